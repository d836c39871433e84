package shared

import "time"

type ServiceConfig struct {
	Listener ListenerConfig `mapstructure:"listener" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
}

type AggregatorConfig struct {
	Listener     ListenerConfig      `mapstructure:"listener" validate:"required"`
	Timeout      time.Duration       `mapstructure:"timeout" validate:"required"`
	Environments []EnvironmentConfig `mapstructure:"environments" validate:"required,min=1,dive"`
}

type AnalyticsConfig struct {
	Listener ListenerConfig `mapstructure:"listener" validate:"required"`
}

type ListenerConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

type StorageConfig struct {
	Driver      string `mapstructure:"driver" validate:"required,oneof=mysql postgres sqlite"`
	Host        string `mapstructure:"host" validate:"required_with=User"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	Name        string `mapstructure:"name"`
	Port        int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path        string `mapstructure:"path"`
	AutoMigrate bool   `mapstructure:"autoMigrate"`
}

type EnvironmentConfig struct {
	Name     string `mapstructure:"name" validate:"required"`
	Users    string `mapstructure:"users" validate:"required,url"`
	Patients string `mapstructure:"patients" validate:"required,url"`
	Exams    string `mapstructure:"exams" validate:"required,url"`
}
