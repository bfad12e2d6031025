// Package metadata resolves canonical game metadata from ranked external
// providers. Providers run concurrently, each under its own timeout, and the
// aggregate search races a master deadline so one slow optional provider
// cannot stall a resolution run. The curated art provider is mandatory: when
// it is unconfigured or failing authentication, search reports a distinct
// unavailable error instead of an empty success.
package metadata
