package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/caedis/factorio-mod-downloader/cmd"
)

func main() {
	cmd.Execute()
}
