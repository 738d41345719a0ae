package di

import (
	"github.com/samber/do/v2"

	"github.com/skywatchd/skywatch/config"
)

func SetupContainer(cfgPath string) do.Injector {
	injector := do.New()

	do.ProvideNamedValue(injector, "configPath", cfgPath)
	do.Provide(injector, NewConfig)

	return injector
}

func NewConfig(i do.Injector) (*config.Config, error) {
	return config.LoadFromFile(do.MustInvokeNamed[string](i, "configPath"))
}
