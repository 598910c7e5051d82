package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	eligibilityapp "github.com/dropship/backend/internal/application/eligibility"
	"github.com/dropship/backend/internal/domain/eligibility"
	"github.com/dropship/backend/internal/infrastructure/auth"
	"github.com/dropship/backend/internal/infrastructure/config"
	"github.com/dropship/backend/internal/infrastructure/logger"
	"github.com/dropship/backend/internal/infrastructure/persistence"
	"github.com/dropship/backend/internal/infrastructure/reference"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// listingFlags are shared by profit and suggest-price
func listingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "wholesale", Usage: "wholesale price in the source currency", Required: true},
		&cli.StringFlag{Name: "wholesale-currency", Usage: "override the source currency"},
		&cli.IntFlag{Name: "weight", Usage: "package weight in grams", Required: true},
		&cli.StringFlag{Name: "marketplace", Aliases: []string{"m"}, Usage: "ebay, etsy or base"},
		&cli.StringFlag{Name: "destination", Usage: "standard or express"},
		&cli.StringSliceFlag{Name: "addon", Usage: "marketplace fee addon, repeatable"},
		&cli.StringFlag{Name: "shipping-override", Usage: "fixed shipping cost in the source currency"},
		&cli.StringFlag{Name: "sale-currency", Usage: "override the sale currency"},
	}
}

func profitCommand() *cli.Command {
	return &cli.Command{
		Name:  "profit",
		Usage: "calculate profit and margin for a sale price",
		Flags: append(listingFlags(),
			&cli.StringFlag{Name: "sale", Usage: "sale price in the sale currency", Required: true},
		),
		Action: func(c *cli.Context) error {
			return withService(c, func(ctx context.Context, svc *eligibilityapp.Service) error {
				weight := c.Int("weight")
				resp, err := svc.CalculateProfit(ctx, eligibilityapp.ProfitRequest{
					WholesalePrice:    c.String("wholesale"),
					WholesaleCurrency: c.String("wholesale-currency"),
					WeightGrams:       &weight,
					SalePrice:         c.String("sale"),
					SaleCurrency:      c.String("sale-currency"),
					Marketplace:       c.String("marketplace"),
					Destination:       c.String("destination"),
					Addons:            c.StringSlice("addon"),
					ShippingOverride:  optional(c, "shipping-override"),
				})
				if err != nil {
					return err
				}
				return writeJSON(c.App.Writer, resp)
			})
		},
	}
}

func suggestPriceCommand() *cli.Command {
	return &cli.Command{
		Name:  "suggest-price",
		Usage: "find the lowest sale price that reaches the target margin",
		Flags: append(listingFlags(),
			&cli.StringFlag{Name: "target-margin", Usage: "margin to reach, defaults to the configured minimum"},
		),
		Action: func(c *cli.Context) error {
			return withService(c, func(ctx context.Context, svc *eligibilityapp.Service) error {
				weight := c.Int("weight")
				resp, err := svc.SuggestPrice(ctx, eligibilityapp.SuggestPriceRequest{
					WholesalePrice:    c.String("wholesale"),
					WholesaleCurrency: c.String("wholesale-currency"),
					WeightGrams:       &weight,
					SaleCurrency:      c.String("sale-currency"),
					Marketplace:       c.String("marketplace"),
					Destination:       c.String("destination"),
					Addons:            c.StringSlice("addon"),
					ShippingOverride:  optional(c, "shipping-override"),
					TargetMargin:      optional(c, "target-margin"),
				})
				if err != nil {
					return err
				}
				return writeJSON(c.App.Writer, resp)
			})
		},
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "run the compliance rules against product text",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Usage: "product category", Required: true},
			&cli.StringFlag{Name: "name-ja"},
			&cli.StringFlag{Name: "name-en"},
			&cli.StringFlag{Name: "description-ja"},
			&cli.StringFlag{Name: "description-en"},
			&cli.StringFlag{Name: "marketplace", Aliases: []string{"m"}},
		},
		Action: func(c *cli.Context) error {
			return withService(c, func(ctx context.Context, svc *eligibilityapp.Service) error {
				resp, err := svc.CheckCompliance(ctx, eligibilityapp.ComplianceRequest{
					Category:      c.String("category"),
					NameJA:        c.String("name-ja"),
					NameEN:        c.String("name-en"),
					DescriptionJA: c.String("description-ja"),
					DescriptionEN: c.String("description-en"),
					Marketplace:   c.String("marketplace"),
				})
				if err != nil {
					return err
				}
				if err := writeJSON(c.App.Writer, resp); err != nil {
					return err
				}
				if !resp.Passed {
					return cli.Exit("", 2)
				}
				return nil
			})
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue an admin token signed with the configured secret",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Usage: "token subject, defaults to the admin username"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if cfg.JWT.Secret == "" {
				return errors.New("jwt.secret is not configured")
			}
			subject := c.String("subject")
			if subject == "" {
				subject = cfg.Admin.Username
			}
			token, err := auth.NewJWTService(cfg.JWT).Issue(subject, auth.RoleAdmin)
			if err != nil {
				return err
			}
			return writeJSON(c.App.Writer, token)
		},
	}
}

func hashPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash-password",
		Usage:     "print a bcrypt hash for admin.password_hash",
		ArgsUsage: "[password]  (read from stdin when omitted)",
		Action: func(c *cli.Context) error {
			password := c.Args().First()
			if password == "" {
				line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				password = strings.TrimRight(line, "\r\n")
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, hash)
			return err
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// withService builds a service over the configured reference tables. Rules
// come from the database unless --offline is set.
func withService(c *cli.Context, fn func(context.Context, *eligibilityapp.Service) error) error {
	ctx := c.Context
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log, err := logger.New(&logger.Config{
		Level:      c.String("log-level"),
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	tables, err := reference.Load(cfg)
	if err != nil {
		return err
	}

	var (
		rules    eligibility.RuleRepository
		products eligibility.ProductRepository
		ruleSet  *eligibility.RuleSet
	)
	if c.Bool("offline") {
		ruleSet, err = eligibility.NewRuleSet(
			eligibility.DefaultBrandRules(),
			eligibility.DefaultKeywordRules(),
			eligibility.DefaultCountryRestrictions(),
		)
		if err != nil {
			return err
		}
	} else {
		db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{Logger: log})
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Warn("Error closing database", zap.Error(err))
			}
		}()
		rules = persistence.NewGormRuleRepository(db.DB)
		products = persistence.NewGormProductRepository(db.DB)
		if ruleSet, err = eligibility.LoadRuleSet(ctx, rules); err != nil {
			return err
		}
	}

	snap, err := tables.Snapshot(ruleSet)
	if err != nil {
		return err
	}

	var opts []eligibilityapp.Option
	if m, err := eligibility.ParseMarketplace(cfg.Pricing.DefaultMarketplace); err == nil {
		opts = append(opts, eligibilityapp.WithDefaultMarketplace(m))
	}
	svc := eligibilityapp.NewService(eligibility.NewSnapshotStore(snap), rules, products, log, opts...)
	return fn(ctx, svc)
}

func optional(c *cli.Context, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	v := c.String(name)
	return &v
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
