package logging

import "go.uber.org/zap"

// GO_ENV=prod はJSON、それ以外は開発向けの読みやすい出力
func New(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
