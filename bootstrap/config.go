package bootstrap

import (
	"github.com/kbukum/cognitokit/config"
)

// Config is the constraint for application configuration types. A struct
// embedding config.ServiceConfig satisfies it through promoted methods when
// it does not override them.
//
//	type Config struct {
//		config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//		Cognito cognito.Config `yaml:"cognito" mapstructure:"cognito"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
