// Package migration converts CSV-exported legacy tracker issues into GitHub
// issues. It houses the pure row converter, the label and user caches, the
// sequential migration driver, and the cobra command wiring them together.
package migration
