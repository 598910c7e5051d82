// Package eligibility decides whether a supplier product may be listed on a
// marketplace. It combines a compliance filter (brand names, prohibited
// keywords, per-category shipping restrictions) with a profit calculator
// (exchange rate, shipping table, marketplace fees) into one result.
//
// Everything here is pure computation over immutable tables. Reference data
// is published through SnapshotStore and replaced wholesale.
package eligibility
