// Package api handles incoming HTTP requests, request validation and
// response formatting. Handlers return a value or an error; the Pipeline
// turns either into an enveloped JSON response, and the Classifier maps
// every failure onto a closed set of error categories.
package api
