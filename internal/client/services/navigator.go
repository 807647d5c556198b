package services

// Navigator moves the user interface between its two entry points. The
// session calls it after login, logout and a failed refresh; it never
// renders anything itself.
type Navigator interface {
	ToLogin()
	ToHome()
}

// NopNavigator ignores navigation.
type NopNavigator struct{}

func (NopNavigator) ToLogin() {}
func (NopNavigator) ToHome()  {}

// NavigatorFuncs adapts plain functions to Navigator. Nil fields are skipped.
type NavigatorFuncs struct {
	Login func()
	Home  func()
}

func (n NavigatorFuncs) ToLogin() {
	if n.Login != nil {
		n.Login()
	}
}

func (n NavigatorFuncs) ToHome() {
	if n.Home != nil {
		n.Home()
	}
}
