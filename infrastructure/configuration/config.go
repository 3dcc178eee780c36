package configuration

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"trend-finder/domain/model"
	"trend-finder/infrastructure/logger"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Database    Database    `json:"database"`
	App         App         `json:"app"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	RedisClient RedisClient `json:"redisClient"`
	Logger      Logger      `json:"logger"`
	YouTube     YouTube     `json:"youtube"`
	Research    Research    `json:"research"`
}

type App struct {
	Port        int    `json:"port"`
	SecretKey   string `json:"secretKey"`
	TLSEnabled  bool   `json:"tlsEnabled"`
	TLSCertFile string `json:"tlsCertFile"`
	TLSKeyFile  string `json:"tlsKeyFile"`
}

type Database struct {
	Psql  Db `json:"psql"`
	MySql Db `json:"mysql"`
	Mssql Db `json:"mssql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	TopicID   string `json:"topicID"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
}

type RedisClient struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Password     string `json:"password"`
	DatabaseName string `json:"databaseName"`
	Username     string `json:"username"`
}

type Logger struct {
	Format string `json:"format"`
}

type YouTube struct {
	APIKey                string  `json:"apiKey"`
	BaseURL               string  `json:"baseURL"`
	ClientID              string  `json:"clientId"`
	ClientSecret          string  `json:"clientSecret"`
	RedirectURI           string  `json:"redirectURI"`
	RequestTimeoutSeconds int     `json:"requestTimeoutSeconds" validate:"gte=1"`
	RateLimit             float64 `json:"rateLimit" validate:"gte=0"`
	CacheTTLMinutes       int     `json:"cacheTTLMinutes" validate:"gte=0"`
}

// Research holds the defaults of the research form and the pipeline tuning.
// The subscriber and view defaults select channels under 100k subscribers with more than 10k views.
type Research struct {
	WindowDays     int    `json:"windowDays" validate:"gte=1,lte=365"`
	MinSubscribers int64  `json:"minSubscribers" validate:"gte=0"`
	MaxSubscribers int64  `json:"maxSubscribers" validate:"gtefield=MinSubscribers"`
	MinViews       int64  `json:"minViews" validate:"gte=0"`
	ResultLimit    int64  `json:"resultLimit" validate:"gte=1,lte=50"`
	VideoType      string `json:"videoType" validate:"oneof=All Shorts Long"`
	FailurePolicy  string `json:"failurePolicy" validate:"oneof=skip abort"`
	Workers        int    `json:"workers" validate:"gte=1,lte=64"`
	TimeoutSeconds int    `json:"timeoutSeconds" validate:"gte=1"`
}

var C Config

// quiet mutes the startup warnings while the package initialises; they are
// reported once the binary calls Reload after loading its env files.
var quiet bool

func init() {
	load(true)
}

// Reload reads the config file and environment again, e.g. after env files were loaded
func Reload() {
	load(false)
}

func load(silent bool) {
	quiet = silent
	defer func() { quiet = false }()

	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	if err := Validate(&C); err != nil && !quiet {
		logger.GetLogger().WithField("error", err).Error("Invalid configuration; research defaults may be unusable")
	}
}

func setDefaults() {
	viper.SetDefault("app.port", 10001)
	viper.SetDefault("youtube.requestTimeoutSeconds", 10)
	viper.SetDefault("youtube.rateLimit", 10)
	viper.SetDefault("youtube.cacheTTLMinutes", 60)
	viper.SetDefault("research.windowDays", 7)
	viper.SetDefault("research.minSubscribers", 0)
	viper.SetDefault("research.maxSubscribers", 99999)
	viper.SetDefault("research.minViews", 10001)
	viper.SetDefault("research.resultLimit", 20)
	viper.SetDefault("research.videoType", string(model.VideoTypeAll))
	viper.SetDefault("research.failurePolicy", string(model.FailurePolicySkip))
	viper.SetDefault("research.workers", 8)
	viper.SetDefault("research.timeoutSeconds", 60)
	viper.SetDefault("pubsub.topicID", "research-completed")
	viper.SetDefault("serviceBus.queue", "research-completed")
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil && !quiet {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found; using defaults and environment")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
		return
	}
	if !quiet {
		logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	}
}

// Validate checks the tunables that have constraints
func Validate(c *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c.Research); err != nil {
		return fmt.Errorf("research config: %w", err)
	}
	if err := validate.Struct(c.YouTube); err != nil {
		return fmt.Errorf("youtube config: %w", err)
	}
	return nil
}

// ResearchDefaults returns the default search query with the window ending at now
func ResearchDefaults(now time.Time) model.SearchQuery {
	r := C.Research
	return model.SearchQuery{
		PublishedAfter:  now.UTC().AddDate(0, 0, -r.WindowDays),
		PublishedBefore: now.UTC(),
		MinSubscribers:  r.MinSubscribers,
		MaxSubscribers:  r.MaxSubscribers,
		MinViews:        r.MinViews,
		ResultLimit:     r.ResultLimit,
		VideoType:       model.VideoType(r.VideoType),
		FailurePolicy:   model.FailurePolicy(r.FailurePolicy),
	}
}

// ResearchTimeout is the deadline of a whole research run
func ResearchTimeout() time.Duration {
	return time.Duration(C.Research.TimeoutSeconds) * time.Second
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	if C.Database.Psql.Name == "" {
		C.Database.Psql.Name = os.Getenv("DB_NAME")
	}
	if C.Database.Psql.Host == "" {
		C.Database.Psql.Host = os.Getenv("DB_HOST")
	}
	if C.Database.Psql.User == "" {
		C.Database.Psql.User = os.Getenv("DB_USER")
	}
	if C.Database.Psql.Password == "" {
		C.Database.Psql.Password = os.Getenv("DB_PASSWORD")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = getEnv("DB_PORT", "5432")
	}

	if C.Database.MySql.Host == "" {
		C.Database.MySql.Host = os.Getenv("MYSQL_HOST")
	}
	if C.Database.MySql.Name == "" {
		C.Database.MySql.Name = os.Getenv("MYSQL_DB_NAME")
	}
	if C.Database.MySql.User == "" {
		C.Database.MySql.User = os.Getenv("MYSQL_USER")
	}
	if C.Database.MySql.Password == "" {
		C.Database.MySql.Password = os.Getenv("MYSQL_PASSWORD")
	}
	if C.Database.MySql.Port == "" {
		C.Database.MySql.Port = getEnv("MYSQL_PORT", "3306")
	}

	// Azure SQL in production
	if C.Database.Mssql.Name == "" {
		C.Database.Mssql.Name = os.Getenv("MSSQL_DB_NAME")
	}
	if C.Database.Mssql.Host == "" {
		C.Database.Mssql.Host = getEnv("MSSQL_HOST", "localhost")
	}
	if C.Database.Mssql.Password == "" {
		C.Database.Mssql.Password = os.Getenv("MSSQL_PASSWORD")
	}
	if C.Database.Mssql.Port == "" {
		C.Database.Mssql.Port = getEnv("MSSQL_PORT", "1433")
	}
	if C.Database.Mssql.User == "" {
		C.Database.Mssql.User = getEnv("MSSQL_USER", "sa")
	}

	if C.RedisClient.Host == "" {
		C.RedisClient.Host = os.Getenv("REDIS_HOST")
	}
	if C.RedisClient.Port == "" {
		C.RedisClient.Port = getEnv("REDIS_PORT", "6379")
	}
	if C.RedisClient.Password == "" {
		C.RedisClient.Password = os.Getenv("REDIS_PASSWORD")
	}
}

func initApp(C *Config) {
	// SECRET_KEY signs the bearer tokens accepted by the preset routes
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			C.App.TLSEnabled = false
		}
	}
	if C.App.TLSCertFile == "" {
		C.App.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if C.App.TLSKeyFile == "" {
		C.App.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}
	if C.App.SecretKey == "" && !quiet {
		logger.GetLogger().Warn("App.SecretKey not set; preset changes will be rejected. Provide SECRET_KEY via environment.")
	}
}
