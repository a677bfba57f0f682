// Package task runs background jobs outside the request path.
//
// Jobs are named envelopes with a JSON payload. Producers put them on a
// Queue; a Runner pulls them off, looks up the Handler registered for the
// job's name and executes it, retrying failures with polynomially growing
// waits. Failures wrapped with ErrDiscard are dropped without retry, and
// jobs that exhaust their attempts are recorded in a FailedJobStore.
//
// Two queues are provided: MemoryQueue, an in-process buffered channel, and
// RedisQueue, a Redis list shared between the API and worker processes.
package task
