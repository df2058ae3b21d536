package kafka

import "errors"

var errMissingOrderID = errors.New("kafka: trabajo sin order_id")
