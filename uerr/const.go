package uerr

//
// a constant sentinel error, usable in a const block and comparable with ==
//
// var ErrFoo = uerr.Const("foo unavailable")
//
type Const string

func (this Const) Error() string { return string(this) }
