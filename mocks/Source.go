// Hand-written in the shape of a mockery-generated mock.

package mocks

import mock "github.com/stretchr/testify/mock"

// Source is a testify mock for the source.Source interface.
type Source struct {
	mock.Mock
}

// ReadAt provides a mock function with given fields: p, off
func (_m *Source) ReadAt(p []byte, off uint64) (int, bool, error) {
	ret := _m.Called(p, off)

	var r0 int
	if rf, ok := ret.Get(0).(func([]byte, uint64) int); ok {
		r0 = rf(p, off)
	} else {
		r0 = ret.Get(0).(int)
	}

	var r1 bool
	if rf, ok := ret.Get(1).(func([]byte, uint64) bool); ok {
		r1 = rf(p, off)
	} else {
		r1 = ret.Get(1).(bool)
	}

	var r2 error
	if rf, ok := ret.Get(2).(func([]byte, uint64) error); ok {
		r2 = rf(p, off)
	} else {
		r2 = ret.Error(2)
	}

	return r0, r1, r2
}
