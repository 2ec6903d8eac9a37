package config

// EnvPrefix is intentionally empty: every variable carries the full
// GARAGEBOOK_ prefix in its envconfig tag.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "GARAGEBOOK_DB_DSN"
	EnvDBHost = "GARAGEBOOK_DB_HOST"
	EnvDBUser = "GARAGEBOOK_DB_USER"
	EnvDBName = "GARAGEBOOK_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
