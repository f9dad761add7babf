package config

import (
	"fmt"
	"os"

	"github.com/kedar94c/whatsapp-crm-backend/pkg/kafka"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/whatsapp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Config struct {
	WhatsApp WhatsAppConfig `yaml:"whatsapp"`
}

type WhatsAppConfig struct {
	Provider string                 `yaml:"provider"`
	Twilio   *whatsapp.TwilioSender `yaml:"twilio,omitempty"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// BuildSender picks the outbound gateway from config. "twilio" talks to the
// provider directly, "kafka" hands messages to the sender worker through the
// outbound topic, "log" just logs them for local development.
func BuildSender(cfg *Config, logr *zap.Logger) (whatsapp.Sender, error) {

	switch cfg.WhatsApp.Provider {
	case "twilio":
		if cfg.WhatsApp.Twilio == nil {
			return nil, fmt.Errorf("missing twilio config for whatsapp provider")
		}
		return &whatsapp.TwilioSender{
			FromNumber: cfg.WhatsApp.Twilio.FromNumber,
			Username:   cfg.WhatsApp.Twilio.Username,
			Password:   cfg.WhatsApp.Twilio.Password,
			Timeout:    cfg.WhatsApp.Twilio.Timeout,
		}, nil

	case "kafka":
		return whatsapp.NewKafkaSender(kafka.NewProducerFromEnv()), nil

	case "log":
		return whatsapp.NewLogSender(logr), nil

	default:
		return nil, fmt.Errorf("unsupported whatsapp provider: %s", cfg.WhatsApp.Provider)
	}
}
