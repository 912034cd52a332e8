package config

const (
	fmtErrEmptyConfig       = "config %s cannot be empty"
	fmtErrEmptyConfigOption = "config field '%s' cannot be empty"
	fmtErrPortRange         = "config field '%s' must be in the range 1-65535"
	fmtErrInvalidOption     = "config field '%s' is invalid: %v"
)

const (
	LogFormatCSV    = "csv"
	LogFormatXLSX   = "xlsx"
	LogFormatSQLite = "sqlite"
)
