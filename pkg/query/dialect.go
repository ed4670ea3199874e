package query

import "strconv"

// Dialect captures the SQL differences the Builder cares about.
type Dialect struct {
	Name string
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
	// Like is the case-insensitive pattern match operator.
	Like string
}

var (
	Postgres = Dialect{
		Name:        "postgres",
		Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		Like:        "ILIKE",
	}

	SQLite = Dialect{
		Name:        "sqlite3",
		Placeholder: func(int) string { return "?" },
		Like:        "LIKE",
	}
)
