// The VeAIOps API server: event dispatch, chat message ingestion, LLM
// agents, threshold recommendation, and the QA knowledge base.
package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/veaiops/veaiops/internal/apiserver"
	"github.com/veaiops/veaiops/pkg/app"
)

func main() {
	opts := apiserver.NewOptions()

	a := app.NewApp(
		app.WithName("veaiops-apiserver"),
		app.WithShortDescription("VeAIOps API server"),
		app.WithDescription(`The VeAIOps API server hosts the event notification pipeline,
chat message ingestion with LLM agents, metric threshold recommendation,
and the vector-backed QA knowledge base.`),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return apiserver.Run(opts)
		}),
	)

	a.Run()
}
