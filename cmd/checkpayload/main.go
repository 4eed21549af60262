// Command checkpayload validates a JSON payload against one of the
// registered request models and prints the validation errors, if any.
// It exercises the same pipe the servers use, so the output matches
// what a client would receive on a rejected request.
//
// Usage:
//
//	checkpayload -model InteractionEvent payload.json
//	cat payload.json | checkpayload -model Participant
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"event-ingress-service/internal/models"
	"event-ingress-service/internal/observability/logging"
	"event-ingress-service/internal/pipe"
	"event-ingress-service/internal/schema"
)

func main() {
	model := flag.String("model", models.ModelInteractionEvent, "model name to validate against")
	collection := flag.String("collection", "single", "payload shape: single, array, map or set")
	flag.Parse()

	logCfg := logging.DefaultConfig()
	logCfg.Level = "error"
	logCfg.Format = "console"
	logging.Init(logCfg)
	logger := logging.Logger()

	registry := schema.NewRegistry()
	if err := models.Register(registry); err != nil {
		logger.Fatal().Err(err).Msg("failed to register models")
	}

	raw, err := readPayload(flag.Arg(0))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to read payload")
	}

	p := pipe.New(registry, nil)
	param := pipe.Param{
		Name:       "",
		Source:     pipe.SourceBody,
		Model:      *model,
		Collection: parseCollection(*collection),
		Required:   true,
	}

	if _, err := p.Transform(context.Background(), raw, param); err != nil {
		var perr *pipe.ParamError
		if errors.As(err, &perr) {
			fmt.Println(perr.Error())
			out, _ := json.MarshalIndent(perr.Errors, "", "  ")
			fmt.Println(string(out))
			os.Exit(1)
		}
		logger.Fatal().Err(err).Msg("validation failed")
	}
	fmt.Printf("payload is a valid %s\n", *model)
}

func readPayload(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func parseCollection(s string) pipe.Collection {
	switch s {
	case "array":
		return pipe.CollectionArray
	case "map":
		return pipe.CollectionMap
	case "set":
		return pipe.CollectionSet
	default:
		return pipe.CollectionSingle
	}
}
