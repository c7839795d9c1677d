package main

import (
	"go.uber.org/fx"

	"github.com/dipherent1/tgwrapper/internal/app"
)

func main() {
	fx.New(app.CreateApp()).Run()
}
