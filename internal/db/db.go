package db

// DB abstracts the database handle so repositories don't depend on a
// concrete driver. The GORM implementation lives in gormdb; tests swap in
// their own.
type DB interface {
	Conn() any
}
