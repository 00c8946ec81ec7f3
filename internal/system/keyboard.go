package system

// KeyF4 is reported for the F4 key, which exits the device binary.
const KeyF4 = "F4"
