package logging

import "go.uber.org/zap"

// GetSugaredLogger builds the application logger. Development encoding in
// debug mode, JSON in release.
func GetSugaredLogger(mode string) *zap.SugaredLogger {
	var logger *zap.Logger
	var err error
	if mode == "release" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic("cannot initialize zap")
	}
	return logger.Sugar()
}
