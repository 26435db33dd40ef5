// Hand-written in the shape of a mockery-generated mock.

package mocks

import mock "github.com/stretchr/testify/mock"

// Sink is a testify mock for the sink.Sink interface.
type Sink struct {
	mock.Mock
}

// Write provides a mock function with given fields: p
func (_m *Sink) Write(p []byte) (int, error) {
	ret := _m.Called(p)

	var r0 int
	if rf, ok := ret.Get(0).(func([]byte) int); ok {
		r0 = rf(p)
	} else {
		r0 = ret.Get(0).(int)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func([]byte) error); ok {
		r1 = rf(p)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
