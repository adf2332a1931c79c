// Package rlwe implements the generic cryptographic functionalities and operations that are common to R-LWE schemes.
// The other implemented schemes extend this package with their specific operations and structures.
package rlwe
