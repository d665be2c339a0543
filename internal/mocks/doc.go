// Package mocks holds test doubles shared by the service, API and server tests.
//
// Memory is an in-memory implementation of every store plus a
// store.Transactor. InTx snapshots the data and restores it when the callback
// fails, and the Fail map injects store errors by operation name, so rollback can be
// tested without Postgres.
//
// MockGenerator returns canned text or an error, or delegates to GenerateFn,
// and records each prompt it receives. MockJWTService fakes token validation.
// The Mock*Service types in services.go are testify mocks of the service
// interfaces for handler tests:
//
//	svc := new(mocks.MockTaskService)
//	svc.On("SkipTask", mock.Anything, userID, taskID).Return(task, nil)
package mocks
