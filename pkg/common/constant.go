package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyLogDir string = "LOG_DIR"

	LoggerNameEnergyCore    string = "energy_core"
	LoggerNameIngest        string = "ingest"
	LoggerNameGateway       string = "gateway"
	LoggerNameAuth          string = "auth"
	LoggerNameStore         string = "store"
	LoggerNameRestfulServer string = "restful_server"

	LoggerFieldCategory   string = "category"
	LoggerCategoryNILM    string = "nilm"
	LoggerCategoryPV      string = "pv"
	LoggerCategoryStats   string = "stats"
	LoggerCategorySession string = "session"
	LoggerCategoryHealth  string = "health"
	LoggerCategoryProxy   string = "proxy"
)
