package prompt

// ExemplarDiff is the canned diff of the few-shot exchange.
const ExemplarDiff = `diff --git a/main.rs b/main.rs
index 9a99e25..d6ce76e 100644
--- a/main.rs
+++ b/main.rs
@@ -1,7 +1,6 @@
     use reqwest::Client;
     use serde::{Deserialize, Serialize};
-    use std::{collections::HashMap, env, io::{BufRead, BufReader, stdin, stdout}, process, str::FromStr};
-    use structopt::{clap::arg_enum, StructOpt};
+    use std::{error::Error, io::{self, Write}};
 #[derive(Debug, Serialize, Deserialize)]
 struct ResponseData {
     joke: String,
 }
-    let response = client.get("https://api.icndb.com/jokes/random").send().await?;
+    let response_result = client.get("https://api.icndb.com/jokes/random").send().await;
+
+    let response = match response_result {
+        Ok(resp) => resp,
+        Err(e) => {
+            eprintln!("Error sending request to API: {}", e);
+            std::process::exit(1);
+        }
+    };
+
+    let response_body = response.text().await?;
-    let response_data: ResponseData = serde_json::from_str(&response_body)?;
+    let response_body_trimmed = response_body.trim();
+    let response_data: ResponseData = match serde_json::from_str(response_body_trimmed) {
+        Ok(data) => data,
+        Err(e) => {
+            eprintln!("Error parsing API response: {}", e);
+            std::process::exit(1);
+        }
+    };
+
+    writeln!(io::stdout(), "{}", response_data.joke)?;
+    Ok(())
 }
`
