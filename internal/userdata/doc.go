// Package userdata manages pytemplate's per-user data: the template base
// directory holding the registry document and its templates, and the debug
// log directory. The built-in template bundle is embedded in the binary and
// installed into the base directory on demand.
package userdata
