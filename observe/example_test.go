package observe_test

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jonwraymond/todogate/observe"
)

func ExampleNewObserver() {
	obs, err := observe.NewObserver(context.Background(), observe.Config{
		ServiceName: "todogate",
		Version:     "1.0.0",
		Tracing:     observe.TracingConfig{Exporter: "none"},
		Metrics:     observe.MetricsConfig{Exporter: "none"},
		Logging:     observe.LoggingConfig{Level: "info"},
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer obs.Shutdown(context.Background())

	fmt.Println("observer ready")
	// Output:
	// observer ready
}

func ExampleConfig_Validate() {
	cfg := observe.Config{
		ServiceName: "todogate",
		Tracing:     observe.TracingConfig{Exporter: "zipkin"},
	}

	err := cfg.Validate()
	fmt.Println(errors.Is(err, observe.ErrInvalidTracingExporter))
	// Output:
	// true
}

func ExampleMiddleware_Run() {
	obs, _ := observe.NewObserver(context.Background(), observe.Config{ServiceName: "todogate"})
	mw, _ := observe.MiddlewareFromObserver(obs, nil)

	err := mw.Run(context.Background(), observe.OpMeta{Name: "migrate", Component: "store"},
		func(ctx context.Context) error {
			return nil
		})
	fmt.Println(err)
	// Output:
	// <nil>
}

func ExampleLogger_With() {
	logger := observe.NewLoggerWithWriter("info", os.Stdout).With(observe.F("component", "auth"))

	// Sensitive keys are replaced before the line is written.
	logger.Debug(context.Background(), "not written at info level", observe.F("password", "hunter2"))
	fmt.Println("done")
	// Output:
	// done
}
