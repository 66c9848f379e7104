package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
)

const PostgresDriver = "pgx"

type Version struct {
	Major int
	Minor int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// RetrieveVersion reads server_version_num, e.g. 160002 for 16.2.
func RetrieveVersion(ctx context.Context, store Store) (Version, error) {
	var versionNum string
	if err := store.QueryRowContext(ctx, "SHOW server_version_num").Scan(&versionNum); err != nil {
		return Version{}, fmt.Errorf("failed to retrieve server version: %w", err)
	}

	return parseVersionNum(versionNum)
}

func parseVersionNum(value string) (Version, error) {
	versionNum, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return Version{}, fmt.Errorf("failed to parse server version %q: %w", value, err)
	}

	// Since Postgres 10 the number is major * 10000 + minor.
	if versionNum < 100_000 {
		return Version{}, fmt.Errorf("unsupported server version %q, expected Postgres 10 or newer", value)
	}

	return Version{Major: versionNum / 10_000, Minor: versionNum % 10_000}, nil
}
