package validator

import "regexp"

// 内置规则使用的正则
var (
	numericRegex       = regexp.MustCompile(`^[0-9]+$`)
	integerRegex       = regexp.MustCompile(`^-?[0-9]+$`)
	decimalRegex       = regexp.MustCompile(`^-?[0-9]*\.?[0-9]+$`)
	emailRegex         = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")
	emailListSep       = regexp.MustCompile(`\s*,\s*`)
	alphaRegex         = regexp.MustCompile(`(?i)^[a-z]+$`)
	alphaNumericRegex  = regexp.MustCompile(`(?i)^[a-z0-9]+$`)
	alphaDashRegex     = regexp.MustCompile(`(?i)^[a-z0-9_\-]+$`)
	naturalRegex       = regexp.MustCompile(`^[0-9]+$`)
	naturalNoZeroRegex = regexp.MustCompile(`^[1-9][0-9]*$`)
	ipRegex            = regexp.MustCompile(`^((25[0-5]|2[0-4][0-9]|1[0-9]{2}|[0-9]{1,2})\.){3}(25[0-5]|2[0-4][0-9]|1[0-9]{2}|[0-9]{1,2})$`)
	base64Regex        = regexp.MustCompile(`^(?:[A-Za-z0-9+/]{4})*(?:[A-Za-z0-9+/]{2}==|[A-Za-z0-9+/]{3}=)?$`)
	numericDashRegex   = regexp.MustCompile(`^[\d\-\s]+$`)
	nonDigitRegex      = regexp.MustCompile(`\D`)
	urlRegex           = regexp.MustCompile(`^((http|https)://(\w+:?\w*@)?(\S+)|)(:[0-9]+)?(/|/([\w#!:.?+=&%@\-/]))?$`)
	dateRegex          = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`)
)
