// Package mocks provides test doubles for the companieshouse client.
package mocks

import (
	"context"

	companieshouse "github.com/sells-group/exec-enrich/pkg/companieshouse"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// SearchCompanies provides a mock function with given fields: ctx, query, limit
func (_m *MockClient) SearchCompanies(ctx context.Context, query string, limit int) (*companieshouse.SearchResponse, error) {
	ret := _m.Called(ctx, query, limit)

	if len(ret) == 0 {
		panic("no return value specified for SearchCompanies")
	}

	var r0 *companieshouse.SearchResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, int) (*companieshouse.SearchResponse, error)); ok {
		return rf(ctx, query, limit)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, int) *companieshouse.SearchResponse); ok {
		r0 = rf(ctx, query, limit)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*companieshouse.SearchResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, int) error); ok {
		r1 = rf(ctx, query, limit)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Officers provides a mock function with given fields: ctx, companyNumber
func (_m *MockClient) Officers(ctx context.Context, companyNumber string) (*companieshouse.OfficersResponse, error) {
	ret := _m.Called(ctx, companyNumber)

	if len(ret) == 0 {
		panic("no return value specified for Officers")
	}

	var r0 *companieshouse.OfficersResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*companieshouse.OfficersResponse, error)); ok {
		return rf(ctx, companyNumber)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *companieshouse.OfficersResponse); ok {
		r0 = rf(ctx, companyNumber)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*companieshouse.OfficersResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, companyNumber)
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
