// Package awhere provides types, interfaces, and helpers for working with the
// aWhere agronomic and weather API.
//
// # Overview
//
// The awhere package defines the domain types (Field, Planting, Forecast,
// Observation, Crop, Model) and the interfaces for resource-oriented clients
// (FieldsClient, WeatherClient, PlantingsClient). A concrete implementation is
// provided by the awhereclient package, which wires configuration, transport
// and authentication. Most consumers should import awhereclient to construct
// a client and then use the interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/awhere-client/pkg/awhere"
//	  "github.com/fivetwenty-io/awhere-client/pkg/awhereclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := awhereclient.New(&awhere.Config{Key: "key", Secret: "secret"})
//	  if err != nil { log.Fatal(err) }
//
//	  forecast, err := cli.Weather().ForecastsAt(ctx, 39.8282, -98.5795, nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = forecast
//	}
//
// # Requests
//
// Every call obtains a bearer token first. Tokens are cached per client until
// they expire; failed token requests are retried five times before the call
// fails with ErrTokenUnavailable. APIRequest exposes the raw pipeline for
// endpoints the resource clients do not cover.
//
// # Coordinates
//
// Weather calls ending in "At" accept a latitude and longitude instead of a
// field ID. The client lists the account's fields once, matches coordinates
// against their center points and creates a field when none matches.
//
// # Errors
//
// API failures are returned as *APIError holding the decoded body. Undecodable
// bodies are *DecodeError and connection failures are *TransportError. Helpers
// such as IsNotFound and IsTokenError make it easy to branch on common cases.
package awhere
