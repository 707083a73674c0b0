package main

import (
	"github.com/vera-byte/bookmandu/cmd"

	vgokit "github.com/vera-byte/vgo-kit"
	"go.uber.org/zap"
)

// main Bookmandu 客户端主入口
func main() {
	if err := cmd.Execute(); err != nil {
		vgokit.Log.Fatal("Failed to execute command", zap.Error(err))
	}
}
