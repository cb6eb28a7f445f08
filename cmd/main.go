package main

import (
	"github.com/corray333/backend-labs/adminlocal/internal/app"
	"github.com/corray333/backend-labs/adminlocal/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
