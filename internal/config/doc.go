// Package config loads pawdesk's TOML configuration.
//
// The config lives at ~/.config/pawdesk/config.toml by default:
//
//	server_url = "https://clinic.example.com"
//	staff_id = 7
//	staff_name = "Dana Reyes"
//	staff_role = "admin"
//	log_dir = "~/.local/share/pawdesk/logs"
//
// A missing file is not an error; every field has a usable default except
// the staff identity, which simply stays unset. Paths support a leading ~
// and are resolved to absolute form.
package config
