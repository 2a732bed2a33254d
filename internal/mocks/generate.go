// Package mocks provides gomock implementations of the ports used by the
// service and HTTP layers.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	gw := mocks.NewMockGateway(ctrl)
//	gw.EXPECT().Select(gomock.Any(), gomock.Any()).Return(rows, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=gateway_mock.go github.com/target/eventdesk/internal/ports Gateway
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_store_mock.go github.com/target/eventdesk/internal/ports SessionStore
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=auth_provider_mock.go github.com/target/eventdesk/internal/ports AuthProvider
