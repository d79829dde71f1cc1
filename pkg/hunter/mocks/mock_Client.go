// Package mocks provides test doubles for the hunter client.
package mocks

import (
	"context"

	hunter "github.com/sells-group/exec-enrich/pkg/hunter"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// DomainSearch provides a mock function with given fields: ctx, domain, limit
func (_m *MockClient) DomainSearch(ctx context.Context, domain string, limit int) (*hunter.DomainSearchResponse, error) {
	ret := _m.Called(ctx, domain, limit)

	if len(ret) == 0 {
		panic("no return value specified for DomainSearch")
	}

	var r0 *hunter.DomainSearchResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, int) (*hunter.DomainSearchResponse, error)); ok {
		return rf(ctx, domain, limit)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, int) *hunter.DomainSearchResponse); ok {
		r0 = rf(ctx, domain, limit)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*hunter.DomainSearchResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, int) error); ok {
		r1 = rf(ctx, domain, limit)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
