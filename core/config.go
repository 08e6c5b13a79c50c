package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf is the app-wide configuration, loaded once on startup.
var Conf *Config

// Conflict check failure policies: what happens to a save when the conflict
// check itself errors out.
const (
	ConflictPolicyAllow = "allow" // fail-open: save proceeds unchecked
	ConflictPolicyBlock = "block" // fail-closed: save is rejected
)

type (
	Config struct {
		Debug    bool
		TestMode bool
		Env      string // DEV (default) | TEST | QA | PROD
		Build    string

		AppName          string
		SecretKey        []byte
		FrontendBaseURL  string
		WorkDir          string
		DefaultFromEmail mail.Address

		SendgridApiKey string
		RollbarToken   string

		Server   ServerConfig
		Database DatabaseConfig
		Schedule ScheduleConfig
	}

	ServerConfig struct {
		Host string
		Port int

		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		PasswordResetTimeoutDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// ScheduleConfig carries the scheduling defaults: week-grid geometry,
	// drag snap granularities and the conflict checking policy.
	ScheduleConfig struct {
		ConflictCheckFailurePolicy string

		GridStartHour     int
		GridEndHour       int
		CoarseSnapMinutes int
		FineSnapMinutes   int
		PixelsPerHour     float64
		DragThresholdPx   float64
		FineHoldDelay     time.Duration
		HoldResetDebounce time.Duration
		AllowEscapeCancel bool
	}
)

func (c Config) Address() string          { return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port) }
func (dc DatabaseConfig) Address() string { return fmt.Sprintf("%s:%d", dc.Host, dc.Port) }

// LoadConfig reads configuration from the environment (with `<ENV>_` prefixed
// overrides) and an optional config/.env.<env> file, and sets Conf.
func LoadConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Backoffice")
	v.SetDefault("secretKey", "x2m)l8#b&h^e+a_b9mvvi(o97*m0^$y5b@9+a#&+=6_wk8u%t)")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("server.passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "backoffice")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("schedule.conflictCheckFailurePolicy", ConflictPolicyAllow)
	v.SetDefault("schedule.gridStartHour", 8)
	v.SetDefault("schedule.gridEndHour", 20)
	v.SetDefault("schedule.coarseSnapMinutes", 15)
	v.SetDefault("schedule.fineSnapMinutes", 5)
	v.SetDefault("schedule.pixelsPerHour", 60.0)
	v.SetDefault("schedule.dragThresholdPx", 5.0)
	v.SetDefault("schedule.fineHoldDelay", 2*time.Second)
	v.SetDefault("schedule.holdResetDebounce", 50*time.Millisecond)
	v.SetDefault("schedule.allowEscapeCancel", true)

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	from, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatalf("config: parsing defaultFromEmail: %v", err)
	}

	Conf = &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         env == "TEST",
		Env:              env,
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		SecretKey:        []byte(v.GetString("secretKey")),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		WorkDir:          wd,
		DefaultFromEmail: *from,
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Port:                      v.GetInt("server.port"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			PasswordResetTimeoutDelta: v.GetDuration("server.passwordResetTimeoutDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Schedule: ScheduleConfig{
			ConflictCheckFailurePolicy: v.GetString("schedule.conflictCheckFailurePolicy"),
			GridStartHour:              v.GetInt("schedule.gridStartHour"),
			GridEndHour:                v.GetInt("schedule.gridEndHour"),
			CoarseSnapMinutes:          v.GetInt("schedule.coarseSnapMinutes"),
			FineSnapMinutes:            v.GetInt("schedule.fineSnapMinutes"),
			PixelsPerHour:              v.GetFloat64("schedule.pixelsPerHour"),
			DragThresholdPx:            v.GetFloat64("schedule.dragThresholdPx"),
			FineHoldDelay:              v.GetDuration("schedule.fineHoldDelay"),
			HoldResetDebounce:          v.GetDuration("schedule.holdResetDebounce"),
			AllowEscapeCancel:          v.GetBool("schedule.allowEscapeCancel"),
		},
	}
	return Conf
}

func init() {
	if Conf == nil {
		LoadConfig()
	}
}
