package config

const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "MILKO_DB_DSN"
	EnvDBHost = "MILKO_DB_HOST"
	EnvDBUser = "MILKO_DB_USER"
	EnvDBName = "MILKO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
