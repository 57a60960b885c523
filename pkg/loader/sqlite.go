package loader

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vanderheijden86/bubblecap/pkg/model"
)

// CompaniesSchema is the table LoadSQLite reads. Rows are read in rowid
// order.
const CompaniesSchema = `CREATE TABLE IF NOT EXISTS companies (
	id               TEXT PRIMARY KEY,
	mcap             REAL,
	companyshortname TEXT NOT NULL DEFAULT '',
	companyname      TEXT NOT NULL DEFAULT '',
	isin             TEXT NOT NULL DEFAULT '',
	sectorname       TEXT NOT NULL DEFAULT '',
	industryname     TEXT NOT NULL DEFAULT '',
	type             TEXT NOT NULL DEFAULT '',
	bsecode          TEXT,
	nsesymbol        TEXT
)`

const selectCompanies = `SELECT id, mcap, companyshortname, companyname, isin,
	sectorname, industryname, type, bsecode, nsesymbol
	FROM companies ORDER BY rowid`

// LoadSQLite reads the companies table of the database at path.
func LoadSQLite(ctx context.Context, path string) (*Result, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open dataset db: %w", err)
	}
	defer db.Close()

	return loadCompanies(ctx, db)
}

func loadCompanies(ctx context.Context, db *sql.DB) (*Result, error) {
	rows, err := db.QueryContext(ctx, selectCompanies)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	res := &Result{Dataset: model.NewDataset()}
	for rows.Next() {
		var (
			id       string
			mcap     sql.NullFloat64
			c        model.Company
			bse, nse sql.NullString
		)
		if err := rows.Scan(&id, &mcap, &c.ShortName, &c.Name, &c.ISIN,
			&c.Sector, &c.Industry, &c.Type, &bse, &nse); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		if mcap.Valid {
			c.MarketCap = model.NewMarketCap(mcap.Float64)
		}
		c.BSECode = model.Code(bse.String)
		c.NSESymbol = model.Code(nse.String)
		if c.Name == "" {
			c.Name = id
		}
		res.Dataset.Add(id, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate companies: %w", err)
	}
	return res, nil
}
