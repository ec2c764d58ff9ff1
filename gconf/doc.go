/*
Package gconf provides a toolset for managing an extension configuration.

Each extension keeps its configuration in a single entity stored under the
"_c:<package name>" key. The configuration is a protobuf message that must
validate before it is written. Owned configurations can only be changed by
their owner through Update.
*/
package gconf
