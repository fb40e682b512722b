package config

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Application config structure
type AppConfig struct {
	Name     string `mapstructure:"service_name" validate:"required"`
	Version  string `mapstructure:"version" validate:"required"`
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required"`
	LogLevel string `mapstructure:"log_level" validate:"required"`
	LogPath  string `mapstructure:"log_path"`

	// Remote interview agent endpoint (opaque bidirectional channel).
	AgentEndpoint string `mapstructure:"agent_endpoint" validate:"required"`
	AgentApiKey   string `mapstructure:"agent_api_key"`

	// Audio pipeline settings. The wire rate must match what the agent
	// endpoint negotiates; the capture rate is the device's native rate.
	CaptureSampleRate int `mapstructure:"capture_sample_rate" validate:"required"`
	WireSampleRate    int `mapstructure:"wire_sample_rate" validate:"required"`
	FrameSize         int `mapstructure:"frame_size" validate:"required"`
}

// reading config and intializing configs for application
func InitConfig() (*viper.Viper, error) {
	vConfig := viper.NewWithOptions(viper.KeyDelimiter("__"))

	vConfig.AddConfigPath(".")
	vConfig.SetConfigName(".env")
	path := os.Getenv("ENV_PATH")
	if path != "" {
		log.Printf("env path %v", path)
		vConfig.SetConfigFile(path)
	}
	vConfig.SetConfigType("env")
	vConfig.AutomaticEnv()

	setDefault(vConfig)
	if err := vConfig.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		log.Printf("no config file found, reading from env variables")
	}

	return vConfig, nil
}

func setDefault(v *viper.Viper) {
	// setting all default values
	v.SetDefault("SERVICE_NAME", "interview-engine")
	v.SetDefault("VERSION", "0.0.1")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 9090)
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("LOG_PATH", "")

	v.SetDefault("AGENT_ENDPOINT", "wss://agent.pathwise.ai/v1/interview")
	v.SetDefault("AGENT_API_KEY", "")

	v.SetDefault("CAPTURE_SAMPLE_RATE", 48000)
	v.SetDefault("WIRE_SAMPLE_RATE", 16000)
	v.SetDefault("FRAME_SIZE", 4096)
}

// Getting application config from viper
func GetApplicationConfig(v *viper.Viper) (*AppConfig, error) {
	var config AppConfig
	err := v.Unmarshal(&config)
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}

	// valdating the app config
	validate := validator.New()
	err = validate.Struct(&config)
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}
	return &config, nil
}
