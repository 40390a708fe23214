package eventmodels

import "fmt"

type SignalClass string

const (
	SignalClassStrongBuy  SignalClass = "StrongBuy"
	SignalClassBuy        SignalClass = "Buy"
	SignalClassHold       SignalClass = "Hold"
	SignalClassSell       SignalClass = "Sell"
	SignalClassStrongSell SignalClass = "StrongSell"
)

func (c SignalClass) IsEntry() bool {
	return c == SignalClassBuy || c == SignalClassStrongBuy
}

func (c SignalClass) IsExit() bool {
	return c == SignalClassSell || c == SignalClassStrongSell
}

func ParseSignalClass(s string) (SignalClass, error) {
	switch SignalClass(s) {
	case SignalClassStrongBuy, SignalClassBuy, SignalClassHold, SignalClassSell, SignalClassStrongSell:
		return SignalClass(s), nil
	default:
		return "", fmt.Errorf("ParseSignalClass: unknown signal class: %s", s)
	}
}
