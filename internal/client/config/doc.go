// Package config loads runtime configuration for the bookcase CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A dotenv file (-env, default ".env") and BOOKCASE_* environment
//     variables. Real environment variables win over the file.
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags (-a, -d, -t, -b, -i, -l).
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "api_url": "http://localhost:8000/api/v1",
//	  "token_backend": "bolt",
//	  "online_check_interval": "3s",
//	  "request_timeout": "12s"
//	}
//
// # Environment
//
//	BOOKCASE_API_URL, BOOKCASE_CATALOG_URL, BOOKCASE_CATALOG_MAX_RESULTS,
//	BOOKCASE_DB_PATH, BOOKCASE_TOKEN_BACKEND, BOOKCASE_BOLT_PATH,
//	BOOKCASE_COOKIE_NAME, BOOKCASE_REQUEST_TIMEOUT (e.g. "12s"),
//	BOOKCASE_ONLINE_CHECK_INTERVAL, BOOKCASE_LOG_LEVEL
package config
