package postgres

import (
	"fmt"
	"time"
)

const (
	poolHealthCheckPeriod = time.Minute
	poolMaxConnLifetime   = time.Hour
	poolMaxConnIdleTime   = 30 * time.Minute
	dbPingTimeout         = 5 * time.Second

	errFailedParseDatabaseConfigFmt  = "failed to parse database config: %w"
	errFailedCreateConnectionPoolFmt = "failed to create connection pool: %w"
	errFailedPingDatabaseFmt         = "failed to ping database: %w"

	errFailedEnsureSchemaFmt   = "failed to create subject_roles schema: %w"
	errFailedGetSubjectRoleFmt = "failed to get role for subject: %w"
	errSchemaMissingFmt        = "subject_roles table does not exist, run with schema setup enabled: %w"
)

var (
	errFailedParseDatabaseConfig  = func(err error) error { return fmt.Errorf(errFailedParseDatabaseConfigFmt, err) }
	errFailedCreateConnectionPool = func(err error) error { return fmt.Errorf(errFailedCreateConnectionPoolFmt, err) }
	errFailedPingDatabase         = func(err error) error { return fmt.Errorf(errFailedPingDatabaseFmt, err) }
	errFailedEnsureSchema         = func(err error) error { return fmt.Errorf(errFailedEnsureSchemaFmt, err) }
	errFailedGetSubjectRole       = func(err error) error { return fmt.Errorf(errFailedGetSubjectRoleFmt, err) }
	errSchemaMissing              = func(err error) error { return fmt.Errorf(errSchemaMissingFmt, err) }
)
