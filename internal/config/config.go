package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// ServerConfig holds configuration variables for the HTTP server.
type ServerConfig struct {
	Scheme string
	Host   string
	Port   string
}

// URL returns the main gateway URL for the server.
func (s *ServerConfig) URL() string {
	host := s.Host
	includePort := func() bool {
		if s.Port == "" {
			return false
		}
		if s.Scheme == "http" {
			return s.Port != "80"
		}
		// s.Scheme == "https"
		return s.Port != "443"
	}()
	if includePort {
		host = fmt.Sprintf("%s:%s", host, s.Port)
	}
	uri := url.URL{
		Scheme: s.Scheme,
		Host:   host,
	}
	return uri.String()
}

// DatabaseConfig holds configuration variables for the embedded database.
type DatabaseConfig struct {
	Dir string // Path to store data in
}

// SessionConfig holds settings for session token signing.
type SessionConfig struct {
	Secret string
}

// MailConfig holds SMTP settings for outbound mail.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	ReplyTo  string
}

// Config holds configuration information for the program.
type Config struct {
	Server   *ServerConfig
	Database *DatabaseConfig
	Session  *SessionConfig
	Mail     *MailConfig

	// FrontendURL is the public base URL of the web client, used to
	// build password-reset links.
	FrontendURL string
}

func setConfigDefaults() {
	viper.SetDefault("server", map[string]interface{}{
		"scheme": "http",
		"host":   "localhost",
		"port":   "5000",
	})

	// Keys must be known to viper for AutomaticEnv to pick them up.
	viper.SetDefault("database.dir", "")
	viper.SetDefault("session.secret", "")
	viper.SetDefault("mail", map[string]interface{}{
		"host":     "",
		"port":     587,
		"username": "",
		"password": "",
		"from":     "",
		"replyto":  "",
	})
	viper.SetDefault("frontendurl", "http://localhost:3000")
}

// Load reads the config file from disk, applying environment overrides,
// and returns the assembled configuration.
func Load() (*Config, error) {
	viper.AddConfigPath("/etc/authserver/")
	viper.AddConfigPath("$HOME/.authserver")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	setConfigDefaults()

	viper.SetEnvPrefix("authserver")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var configPath string
	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No configuration found. Running with defaults...")
			configPath, err = getConfigurationDirectory()
			if err != nil {
				return nil, err
			}
		} else {
			return nil, fmt.Errorf("unable to read config file: %v", err)
		}
	} else {
		configPath = filepath.Dir(viper.ConfigFileUsed())
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %v", err)
	}

	// Set paths with known configPath
	if config.Database == nil {
		config.Database = &DatabaseConfig{}
	}
	if config.Database.Dir == "" {
		config.Database.Dir = filepath.Join(configPath, "data")
	}
	if config.Session == nil || config.Session.Secret == "" {
		return nil, fmt.Errorf("session secret not configured")
	}
	if config.Mail == nil {
		config.Mail = &MailConfig{}
	}
	if config.Mail.ReplyTo == "" {
		config.Mail.ReplyTo = config.Mail.From
	}

	return &config, nil
}

func getConfigurationDirectory() (string, error) {
	var configDir string

	// Prefer /etc
	configDir = "/etc/authserver"
	if _, err := os.Stat(configDir); err == nil {
		return configDir, nil
	} else if os.IsNotExist(err) {
		// Try to create /etc/authserver
		// For non-sudo users, this is not possible
		if err := os.Mkdir(configDir, 0770); err == nil {
			return configDir, nil
		}
	} else {
		return "", err
	}

	// Check home directory
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("could not retrieve home directory: %v", err)
	}
	configDir = filepath.Join(home, ".authserver")
	if _, err := os.Stat(configDir); err == nil {
		return configDir, nil
	} else if os.IsNotExist(err) {
		if err := os.Mkdir(configDir, 0777); err == nil {
			return configDir, nil
		}
	} else {
		return "", err
	}

	return "", fmt.Errorf("could not locate viable storage dir")
}
