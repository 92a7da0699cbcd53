// Package config loads service configuration for applications built on the
// di registry.
//
// Values come from a YAML file, a .env file and the process environment, in
// that order of precedence (lowest first). Files are searched under
// cmd/<service>/, config/<service>/, config/ and the working directory unless
// given explicitly.
//
// # Usage
//
//	cfg, err := config.Load("orders")
//
// Environment variables override file values using the upper-cased service
// name as prefix with underscore-separated paths, e.g.
// ORDERS_CONTAINER_POOL_SIZE=8 sets container.pool_size.
package config
