package enums

type SwipeDirection string

const (
	SwipeDirectionLeft  SwipeDirection = "left"
	SwipeDirectionRight SwipeDirection = "right"
)
