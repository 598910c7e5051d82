package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"
)

func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	chdir(t, t.TempDir())

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.Reader = strings.NewReader(stdin)
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"dsctl"}, args...))
	return out.String(), err
}

func TestProfitOffline(t *testing.T) {
	out, err := runApp(t, "", "--offline", "profit", "--wholesale", "500", "--weight", "50", "--sale", "15", "-m", "ebay")
	require.NoError(t, err)

	var resp struct {
		Profit struct {
			Amount string `json:"amount"`
		} `json:"profit"`
		Margin     string `json:"margin"`
		Profitable bool   `json:"profitable"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.Equal(t, "5.51", resp.Profit.Amount)
	assert.Equal(t, "0.3673", resp.Margin)
	assert.True(t, resp.Profitable)
}

func TestProfitRequiresFlags(t *testing.T) {
	_, err := runApp(t, "", "--offline", "profit", "--wholesale", "500")
	assert.Error(t, err)
}

func TestSuggestPriceOffline(t *testing.T) {
	out, err := runApp(t, "", "--offline", "suggest-price", "--wholesale", "500", "--weight", "50")
	require.NoError(t, err)
	assert.Contains(t, out, `"amount": "12.15"`)
}

func TestCheckOffline(t *testing.T) {
	out, err := runApp(t, "", "--offline", "check", "--category", "knife", "--name-en", "Shun chef knife", "-m", "ebay")
	require.Error(t, err)
	assert.Contains(t, out, "brand name detected: Shun")

	out, err = runApp(t, "", "--offline", "check", "--category", "towel", "--name-en", "Cotton towel")
	require.NoError(t, err)
	assert.Contains(t, out, `"passed": true`)
}

func TestHashPassword(t *testing.T) {
	out, err := runApp(t, "hunter2\n", "hash-password")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")))

	_, err = runApp(t, "", "hash-password")
	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	_, err := runApp(t, "", "token")
	assert.Error(t, err)

	t.Setenv("DSE_JWT_SECRET", "dsctl-test-secret-0123456789abcdef")
	out, err := runApp(t, "", "token", "--subject", "ops")
	require.NoError(t, err)
	assert.Contains(t, out, `"access_token"`)
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
