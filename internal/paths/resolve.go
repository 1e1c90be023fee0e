package paths

import "os"

// ConfigEnv names the config file when no flag is given.
const ConfigEnv = "MCUBUS_CONFIG"

// ResolveConfig determines the config file path using precedence:
// 1. flagOverride (--config flag)
// 2. $MCUBUS_CONFIG
// 3. ConfigPath()
func ResolveConfig(flagOverride string) string {
	if flagOverride != "" {
		return flagOverride
	}
	if p := os.Getenv(ConfigEnv); p != "" {
		return p
	}
	return ConfigPath()
}
