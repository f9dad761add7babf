package logger

import (
	"go.uber.org/zap"

	"github.com/kedar94c/whatsapp-crm-backend/pkg/utils"
)

// InitLogger returns a production JSON logger when STATE=prod and a
// human readable development logger otherwise.
func InitLogger() (*zap.Logger, error) {
	if utils.GetEnv("STATE") == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
