package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                string  // connection string for the database (empty: no persistence)
	NatsURL           string  // URL of the NATS server (empty: no publishing)
	NatsPrefix        string  // subject prefix for published messages
	WaitForServices   string  // duration to wait for other services to be ready
	LogLevel          string  // sets the log level (zap log level values)
	SQLLogLevel       string  // sets the log level for sql subsystem
	LogFormat         string  // text vs json
	LogFilter         string  // zapfilter rules, e.g. "debug:engineer info:*"
	EnableTelemetry   bool    // enable telemetry
	TelemetryEndpoint string  // endpoint for telemetry, "stdout" prints to console
	Input             string  // path of the recording
	Speed             float64 // replay speed factor, <= 0 means as fast as possible
	WorldRecord       string  // world record lap time, e.g. 1:45.200 or 105.2s
	Car               string  // overrides car from recording header
	Track             string  // overrides track from recording header
	HistorySize       int     // frames per analysis window of the live engineer
	HoldDuration      string  // how long an alert is held after its condition cleared
	CompoundsFile     string  // YAML file with tyre compound definitions
	SampleInterval    string  // tick interval for suspension velocity
)
