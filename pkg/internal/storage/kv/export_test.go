package kv

// NewMemoryKVWithClock 暴露可注入时钟的构造函数给外部测试.
var NewMemoryKVWithClock = newMemoryKV
