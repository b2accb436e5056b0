// Package awhereclient provides the primary entry point for constructing an
// aWhere API client that implements the awhere.Client interface.
//
// It layers configuration, HTTP transport, OAuth2 client-credentials
// authentication and the field resolution cache on top of the resource
// interfaces and types defined in the awhere package. Most applications
// should import awhereclient to build a client, then use the returned
// awhere.Client to reach the resource clients, for example Fields(),
// Weather() and Crops().
//
// Quick start
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
//
//	  cli, err := awhereclient.NewWithCredentials("api-key", "api-secret")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with the full configuration:
//	  cli, err = awhereclient.New(&awhere.Config{
//	    Key:           "api-key",
//	    Secret:        "api-secret",
//	    RetryMax:      2,
//	    RequestsPerSecond: 5,
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Weather for a point; the field is found or created on first use.
//	  forecast, err := cli.Weather().ForecastsAt(ctx, 39.8282, -98.5795, nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = forecast
//	}
//
// # Tokens
//
// A bearer token is fetched on the first call and reused until it expires.
// A failed token request is retried up to five more times before the call
// fails with awhere.ErrTokenUnavailable.
//
// # Helpers
//
// The package also provides convenience constructors NewWithCredentials and
// NewWithEndpoint that wrap New with the appropriate configuration.
package awhereclient
