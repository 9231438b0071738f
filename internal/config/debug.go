package config

import "os"

func IsDebug() bool {
	return os.Getenv("TGAGENT_DEBUG") == "1"
}
