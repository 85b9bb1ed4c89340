// Package regmap holds the register-map model and the compile-time checks
// that run over it.
//
// A build is a set of independently authored [Module] descriptions. Each
// module is resolved on its own (addresses computed, symbols named) and then
// the whole build is validated at once, so that a single run reports every
// problem.
//
// # Pipeline
//
//	Module -> Allocator -> Validator -> Namespace -> emitter
//
// [Resolve] validates the model, runs the [Allocator] and derives symbol
// names. [Validator.CheckModule] checks offsets and computes the struct
// [Layout]. [Validator.CheckBuild] checks cross-module address overlap and
// symbol collisions. Only a build whose [Report] is valid may be emitted.
//
// # Symbols
//
// Every symbol is prefixed with the upper-cased module name:
//
//	SENSOR_CONTROLLER_BASE_ADDR
//	SENSOR_CONTROLLER_STATUS_REG_OFFSET
//	SENSOR_CONTROLLER_STATUS_REG_ADDR
//	SENSOR_CONTROLLER_READ_STATUS_REG
//	SENSOR_CONTROLLER_WRITE_CONFIG_REG
//	SENSOR_CONTROLLER_REGS
//	sensor_controller_regs_t
package regmap
