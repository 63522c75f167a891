package paramcheck

// Version is the library version.
const Version = "0.4.0"
