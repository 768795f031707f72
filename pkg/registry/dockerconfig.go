package registry

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

type dockerConfig struct {
	Auths map[string]dockerAuth `json:"auths"`
}

type dockerAuth struct {
	Auth     string `json:"auth,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// LoginFromDockerConfig reuses the credentials the container engine already
// holds: whatever docker/podman is logged into, the chart registry client
// logs into as well.
func (c *Client) LoginFromDockerConfig(engine string) error {
	configPath, err := dockerConfigPath(engine)
	if err != nil {
		return fmt.Errorf("failed to locate %s config: %w", engine, err)
	}
	log.WithField("path", configPath).Debug("reading container engine config")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var config dockerConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if len(config.Auths) == 0 {
		return fmt.Errorf("no authentication entries found in %s", configPath)
	}
	successCount := 0
	for host, entry := range config.Auths {
		username, password, err := decodeAuth(entry)
		if err != nil {
			log.WithField("registry", host).Warnf("skipping: %s", err)
			continue
		}
		if err := c.Login(host, username, password); err != nil {
			log.WithField("registry", host).Warnf("login failed: %s", err)
			continue
		}
		log.WithField("registry", host).Info("authenticated")
		successCount++
	}
	if successCount == 0 {
		return fmt.Errorf("failed to authenticate with any registry")
	}
	return nil
}

func dockerConfigPath(engine string) (string, error) {
	var configDir string
	switch engine {
	case "docker":
		configDir = filepath.Join(os.Getenv("HOME"), ".docker")
	case "podman":
		authPath := filepath.Join(fmt.Sprintf("/run/user/%d/containers", os.Getuid()), "auth.json")
		if _, err := os.Stat(authPath); err == nil {
			return authPath, nil
		}
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "containers")
		} else {
			configDir = filepath.Join(os.Getenv("HOME"), ".config", "containers")
		}
	default:
		return "", fmt.Errorf("unsupported engine: %s", engine)
	}
	configPath := filepath.Join(configDir, "config.json")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return "", fmt.Errorf("config file not found at %s", configPath)
	}
	return configPath, nil
}

func decodeAuth(entry dockerAuth) (string, string, error) {
	//TODO: support keychains, later
	if entry.Auth != "" {
		decoded, err := base64.StdEncoding.DecodeString(entry.Auth)
		if err != nil {
			return "", "", fmt.Errorf("failed to decode auth string: %w", err)
		}
		parts := strings.SplitN(string(decoded), ":", 2)
		if len(parts) != 2 {
			return "", "", fmt.Errorf("invalid auth format")
		}
		return parts[0], parts[1], nil
	}
	if entry.Username != "" && entry.Password != "" {
		return entry.Username, entry.Password, nil
	}
	return "", "", fmt.Errorf("no usable credentials")
}
