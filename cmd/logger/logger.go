// Example: Switch the connector logger and its level.
package main

import (
	"bytes"
	"log"
	"strings"

	sf "github.com/snowflakedb/snowflake-connector-go"
)

func main() {
	buf := &bytes.Buffer{}
	buf2 := &bytes.Buffer{}

	var mylog = sf.GetLogger()
	mylog.SetOutput(buf)
	_ = mylog.SetLogLevel("info")
	mylog.Info("Hello I am default")
	mylog.Debug("Default I am debug NOT SHOWN")
	_ = mylog.SetLogLevel("debug")
	mylog.Debug("Default II amm debug TO SHOW")
	mylog.Infof("masked: %v", `Authorization: Snowflake Token="ETMsDgAAAXYZ1234abcd"`)

	var testlog = sf.CreateDefaultLogger()
	_ = testlog.SetLogLevel("debug")
	testlog.SetOutput(buf2)
	if err := sf.SetLogger(testlog); err != nil {
		log.Fatalf("failed to set logger. err: %v", err)
	}

	var mylog2 = sf.GetLogger()
	mylog2.Debug("test debug log is shown")
	_ = mylog2.SetLogLevel("info")
	mylog2.Debug("test debug log is not shownII")
	log.Print("Expect all true values:")

	// verify logger switch
	var strbuf = buf.String()
	log.Printf("%t:%t:%t", strings.Contains(strbuf, "I am default"),
		!strings.Contains(strbuf, "test debug log is shown"),
		strings.Contains(buf2.String(), "test debug log is shown"))

	// verify log level switch and masking
	log.Printf("%t:%t:%t:%t", !strings.Contains(strbuf, "Default I am debug NOT SHOWN"),
		strings.Contains(strbuf, "Default II amm debug TO SHOW"),
		!strings.Contains(buf2.String(), "test debug log is not shownII"),
		!strings.Contains(strbuf, "ETMsDgAAAXYZ1234abcd"))
}
