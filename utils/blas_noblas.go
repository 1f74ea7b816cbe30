//go:build noblas

package utils

const blasDefault = false
