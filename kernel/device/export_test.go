package device

// SetDriverList replaces the registry contents and returns a function that
// restores the previous list.
func SetDriverList(list DriverInfoList) (restore func()) {
	orig := registeredDrivers
	registeredDrivers = list
	return func() { registeredDrivers = orig }
}
